package main

import "github.com/atlas-erp/atlas-console/cmd/atlasctl/cli"

func main() {
	cli.Execute()
}
