package main

import "github.com/vivoohoo/IntelligentCsvAnalyzer/cmd"

func main() {
	cmd.Execute()
}
