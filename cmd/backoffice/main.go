package main

import "github.com/localnerve/backoffice-propsdb/internal/cli"

func main() {
	cli.Execute()
}
