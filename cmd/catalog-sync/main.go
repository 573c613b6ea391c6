package main

import "catalog-sync/internal/cli"

func main() {
	cli.Execute()
}
