package main

import "crowdin-distributor/cmd"

func main() {
	cmd.Execute()
}
