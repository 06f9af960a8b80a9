/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/port-russell/marina/cmd"

func main() {
	cmd.Execute()
}
