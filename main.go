package main

import "github.com/tanq16/okapi-downloader/cmd"

func main() {
	cmd.Execute()
}
