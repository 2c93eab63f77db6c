// Package main is the entry point for mediavault.
package main

func main() {
	Execute()
}
