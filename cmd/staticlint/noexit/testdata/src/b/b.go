package main

import sys "os"

func main() {
	sys.Exit(0) // want "direct os.Exit call in main.main"
}
