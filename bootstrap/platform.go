package bootstrap

import "runtime"

func venvBinDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

func pythonBinary() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}
