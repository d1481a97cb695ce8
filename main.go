package main

import "github.com/frahmantamala/expense-reports/cmd"

func main() {
	cmd.Execute()
}
