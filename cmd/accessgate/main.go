// Package main is the entry point for accessgate.
package main

func main() {
	Execute()
}
