package main

import "github.com/NoahInCloud/devops-sentinel-multi-agent/cmd"

func main() {
	cmd.Execute()
}
