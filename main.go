package main

import "github.com/ckeyscan/ckeyscan/cmd/ckeyscan"

func main() { ckeyscan.Execute() }
