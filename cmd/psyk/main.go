/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ttkb-oss/psy-k/cmd/psyk/cmd"

func main() {
	cmd.Execute()
}
