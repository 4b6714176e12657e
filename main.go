package main

import "ventanita/internal/app"

func main() {
	app.Execute()
}
