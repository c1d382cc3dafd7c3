package main

import (
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
	"viamboard"
)

func main() {
	module.ModularMain(
		resource.APIModel{API: camera.API, Model: viamboard.BoardCameraModel},
		resource.APIModel{API: generic.API, Model: viamboard.RecognizerModel},
	)
}
