package main

import "github.com/oshokin/lmod-packager/cmd/lmod-packager/cmd"

func main() {
	cmd.Execute()
}
