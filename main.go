package main

import "salonbook/internal/cli"

func main() {
	cli.Execute()
}
