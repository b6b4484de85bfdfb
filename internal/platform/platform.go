// File: internal/platform/platform.go
package platform

// Config describes one supported publishing platform. Values are immutable
// once the registry is built.
type Config struct {
	// Type is the numeric platform code used in stored account records.
	Type int
	// Key is the stable identifier used in session-blob filenames.
	Key string
	// Name is the display name shown to operators.
	Name string
	// LoginURL is where an interactive login starts.
	LoginURL string
	// PersonalURL is the profile/creator-center page used to probe whether
	// a stored session is still authenticated. Empty means the platform
	// cannot be validated.
	PersonalURL string
}

// Registry is an immutable lookup table of platform configurations. It is
// constructed once and passed explicitly to the components that need it.
type Registry struct {
	byType map[int]Config
	byKey  map[string]Config
}

// NewRegistry builds the registry over the built-in platform table.
func NewRegistry() *Registry {
	return newRegistry(builtinConfigs)
}

func newRegistry(configs []Config) *Registry {
	r := &Registry{
		byType: make(map[int]Config, len(configs)),
		byKey:  make(map[string]Config, len(configs)),
	}
	for _, c := range configs {
		r.byType[c.Type] = c
		r.byKey[c.Key] = c
	}
	return r
}

// ByType looks a platform up by its numeric code.
func (r *Registry) ByType(code int) (Config, bool) {
	c, ok := r.byType[code]
	return c, ok
}

// ByKey looks a platform up by its string key.
func (r *Registry) ByKey(key string) (Config, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// All returns every configured platform, ordered by type code.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.byType))
	for code := 0; code < 64; code++ {
		if c, ok := r.byType[code]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Detector returns the login detector for the given platform key. Platforms
// without a dedicated detector get the URL-keyword default, so adding a
// platform never requires touching detection code.
func (r *Registry) Detector(key string) LoginDetector {
	if d, ok := detectors[key]; ok {
		return d
	}
	return defaultDetector
}

// builtinConfigs mirrors the platform table of the publishing backend. Codes
// are part of the stored data format and must not be renumbered.
var builtinConfigs = []Config{
	{
		Type:        1,
		Key:         "xiaohongshu",
		Name:        "小红书",
		LoginURL:    "https://creator.xiaohongshu.com/login",
		PersonalURL: "https://creator.xiaohongshu.com/new/home",
	},
	{
		Type:        2,
		Key:         "channels",
		Name:        "视频号",
		LoginURL:    "https://channels.weixin.qq.com",
		PersonalURL: "https://channels.weixin.qq.com/platform",
	},
	{
		Type:        3,
		Key:         "douyin",
		Name:        "抖音",
		LoginURL:    "https://creator.douyin.com",
		PersonalURL: "https://creator.douyin.com/creator-micro/home",
	},
	{
		Type:        4,
		Key:         "kuaishou",
		Name:        "快手",
		LoginURL:    "https://cp.kuaishou.com",
		PersonalURL: "https://cp.kuaishou.com/profile",
	},
	{
		Type:        5,
		Key:         "tiktok",
		Name:        "TikTok",
		LoginURL:    "https://www.tiktok.com/login?lang=en",
		PersonalURL: "https://www.tiktok.com/tiktokstudio",
	},
	{
		Type:        6,
		Key:         "instagram",
		Name:        "Instagram",
		LoginURL:    "https://www.instagram.com/accounts/login/",
		PersonalURL: "https://www.instagram.com/accounts/edit/",
	},
	{
		Type:        7,
		Key:         "facebook",
		Name:        "Facebook",
		LoginURL:    "https://www.facebook.com/login",
		PersonalURL: "https://www.facebook.com/me",
	},
	{
		Type:        8,
		Key:         "bilibili",
		Name:        "哔哩哔哩",
		LoginURL:    "https://passport.bilibili.com/login",
		PersonalURL: "https://member.bilibili.com/platform/home",
	},
	{
		Type:        9,
		Key:         "baijiahao",
		Name:        "百家号",
		LoginURL:    "https://baijiahao.baidu.com/builder/rc/login",
		PersonalURL: "https://baijiahao.baidu.com/builder/rc/home",
	},
}
