package main

import "Abridge_1.0/client/abridge-cli/cmd"

func main() {
	cmd.Execute()
}
