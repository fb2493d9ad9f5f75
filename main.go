/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/rolldice/cmd"

func main() {
	cmd.Execute()
}
