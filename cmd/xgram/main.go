package main

import "github.com/shibukawa/xgram/cli"

func main() {
	cli.Main()
}
