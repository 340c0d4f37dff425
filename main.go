package main

import "github.com/sugar-tools/sugar/cmd/sugar"

func main() {
	sugar.Main()
}
