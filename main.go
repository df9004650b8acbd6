package main

import "github.com/RyanBlaney/ppg-features/cmd"

func main() {
	cmd.Execute()
}
