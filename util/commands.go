package util

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"shroud/cryptography"
)

const (
	TextEditor             = "/usr/bin/vi"
	TextEditorVariableName = "SHROUD_EDITOR"
	ShredCount             = 10
)

/*
 * user-related helpers so that an encrypted configuration or log never has
 * to be decrypted by hand.
 */
func EditConfig(conf string, password string) error {
	te := os.Getenv(TextEditorVariableName)
	if te == "" {
		te = TextEditor
	}

	pt, err := ReadEncrypted(conf, password)
	if err != nil {
		return fmt.Errorf("Failed to read configuration: %w", err)
	}

	tmp, err := os.CreateTemp("", "shroud-*.yaml")
	if err != nil {
		return fmt.Errorf("Failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()
	defer ShredFile(tempFile)
	_, err = tmp.Write(pt)
	tmp.Close()
	if err != nil {
		return fmt.Errorf("Failed to write into temporary file: %w", err)
	}

	cmd := exec.Command(te, tempFile)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("Failed to edit file using %v: %w", te, err)
	}

	pt, err = os.ReadFile(tempFile)
	if err != nil {
		return fmt.Errorf("Failed to read temporary file: %w", err)
	}
	return WriteEncrypted(conf, password, pt)
}

// ReadLog returns the content of a log file. Logs written without
// encryption are returned as they are.
func ReadLog(log string, password string) (string, error) {
	data, err := os.ReadFile(log)
	if err != nil {
		return "", fmt.Errorf("Failed to read file: %w", err)
	}
	if printable(data) {
		return string(data), nil
	}
	logs, err := cryptography.Decrypt(data, password)
	if err != nil || printable(logs) == false {
		return "", fmt.Errorf("Failed to decrypt logs: invalid password")
	}
	return string(logs), nil
}

func printable(data []byte) bool {
	for _, r := range string(data) {
		if r != '\n' && r != '\t' && r != '\033' && strconv.IsPrint(r) == false {
			return false
		}
	}
	return true
}

// ShredFile overwrites a file with random data a few times before removing it.
func ShredFile(filename string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	var finalError error
	if info.Size() > 0 {
		for i := 0; i < ShredCount; i++ {
			content, err := cryptography.GenRandom(uint(info.Size()))
			if err == nil {
				os.WriteFile(filename, content, 0600)
			} else {
				finalError = err
			}
		}
	}
	if err = os.Remove(filename); err != nil {
		finalError = err
	}
	return finalError
}
