package main

import "photo-reconciler/cmd"

func main() {
	cmd.Execute()
}
