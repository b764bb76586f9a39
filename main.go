package main

import "QFMPlayer/cmd"

func main() {
	cmd.Execute()
}
