//go:build windows

package platform

import (
	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	getAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	sendInput        = user32.NewProc("SendInput")
	mapVirtualKeyW   = user32.NewProc("MapVirtualKeyW")
)
