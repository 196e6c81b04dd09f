package main

import "remindly/cmd"

func main() {
	cmd.Run()
}
