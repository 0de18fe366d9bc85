package main

import "github.com/MiguelSerea/taskmanagement/internal"

func main() {
	internal.Init()
}
