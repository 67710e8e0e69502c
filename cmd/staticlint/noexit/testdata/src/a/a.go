package main

import (
	"fmt"
	"os"
)

func helper() {
	os.Exit(2)
}

func main() {
	fmt.Println("start")
	defer fmt.Println("done")
	if len(os.Args) > 3 {
		os.Exit(1) // want "direct os.Exit call in main.main"
	}
	func() {
		os.Exit(3) // want "direct os.Exit call in main.main"
	}()
	helper()
}
