package main

import "github.com/bibbank/credit-service/internal/cli"

func main() {
	cli.Execute()
}
