package main

import "github.com/mselser95/polymarket-seeder/cmd"

func main() {
	cmd.Execute()
}
