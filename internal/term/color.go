package term

import "github.com/fatih/color"

// Banner color helpers shared by the CLI. Block variants paint the
// background for warning banners; text variants color the foreground.
var (
	RedBlock    = color.New(color.BgRed).SprintFunc()
	BlueBlock   = color.New(color.BgBlue).SprintFunc()
	YellowBlock = color.New(color.BgYellow).SprintFunc()
	GreenBlock  = color.New(color.BgGreen).SprintFunc()
	RedText     = color.New(color.FgRed).SprintFunc()
	YellowText  = color.New(color.FgYellow).SprintFunc()
)
