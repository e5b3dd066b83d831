/*
Package terra extracts, decomposes and reshapes the geometric structure of
single- and multi-channel height fields.

Given a raster height image it produces reconstructed heights honouring a
target surface-normal field, a half-edge mesh of ridge and valley lines
threading the terrain, and styled variants (anisotropic smoothing, line
integral convolution). An effect-stack driver sequences these transforms
over a working buffer, memoizing expensive layers so repeated edits only
recompute the part of the stack that actually changed.

The package provides a command line interface for driving the engine from
the shell. To check the supported commands type:

	$ terra --help

In case you wish to integrate the engine in a self constructed environment
here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/terra"
	)

	func main() {
		height, _ := terra.LoadSourceHeightField("input.png", 1.0, 0)
		buf := &terra.WorkingBuffer{
			W: height.W, H: height.H,
			Planes: [3]*terra.HeightField{height, height.Clone(), height.Clone()},
		}

		stack := terra.NewEffectStack(terra.StackErosion)
		stack.SetSource(buf)
		stack.Push(terra.EffectPoissonSolve, []byte{200, 128})

		out, err := stack.Run()
		if err != nil {
			fmt.Printf("Error running the effect stack: %s", err.Error())
			return
		}
		terra.SaveImage("output.png", terra.WorkingBufferToRGBA(out))
	}
*/
package terra
