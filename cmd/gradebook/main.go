// Command gradebook imports, inspects and reports student results.
package main

import "github.com/JonMunkholm/gradebook/internal/cli"

func main() {
	cli.Execute()
}
