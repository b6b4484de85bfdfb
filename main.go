// ./main.go
package main

import (
	"github.com/nyxaris9/socialup-cli/cmd"
)

func main() {
	cmd.Execute()
}
