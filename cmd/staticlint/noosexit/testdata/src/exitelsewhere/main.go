package main

import "os"

type runner struct{}

func (runner) main() {
	os.Exit(1)
}

func fail() {
	os.Exit(1)
}

func main() {
	fail()
	runner{}.main()
}
