package main

import "github.com/kozaktomas/photo-labeler/cmd"

func main() {
	cmd.Execute()
}
