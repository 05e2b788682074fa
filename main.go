package main

import "studybuddy/cmd"

func main() {
	cmd.Execute()
}
