package main

import "github.com/zeusync/laneracer/internal/cli"

func main() {
	cli.Execute()
}
