package main

import "github.com/vibast-solutions/ms-go-webauth/cmd"

func main() {
	cmd.Execute()
}
