package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"shroud/cryptography"
)

/*
 * a small leveled logger for the command line tool.
 */
const (
	Error   = 1
	Warning = 2
	Info    = 4
	Debug   = 8

	// everything but debug output
	DefaultMode = Error | Warning | Info

	RedColor     = "\033[31m"
	YellowColor  = "\033[33m"
	GreenColor   = "\033[32m"
	CyanColor    = "\033[36m"
	BlueColor    = "\033[34m"
	MagentaColor = "\033[35m"
	ResetColor   = "\033[0m"
)

type LoggerInfo struct {
	Filename    string `yaml:"filename"`
	Password    string `yaml:"password"`
	IsEncrypted bool   `yaml:"is_encrypted"`
	IsColored   bool   `yaml:"is_colored"`
	SaveTime    bool   `yaml:"save_time"`
	Mode        uint8  `yaml:"mode"`
}

type Logger struct {
	li  *LoggerInfo
	out io.Writer // used when no file is configured
	mtx sync.Mutex
}

func NewLogger(li *LoggerInfo) *Logger {
	return &Logger{
		li:  li,
		out: os.Stderr,
	}
}

func (l *Logger) colorize(line string, color string) string {
	if l.li.IsColored {
		return color + line + ResetColor
	}
	return line
}

func (l *Logger) prepareString(str string, clr string) string {
	toWrite := l.colorize(str, clr) + " "
	if l.li.SaveTime {
		toWrite += time.Now().Format(time.DateTime) + " "
	}
	return toWrite
}

func (l *Logger) LogString(s string) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.li.Filename == "" {
		fmt.Fprintln(l.out, s)
		return
	}
	if l.li.IsEncrypted == false {
		// just append line
		f, err := os.OpenFile(l.li.Filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err == nil {
			defer f.Close()
			f.WriteString(s + "\n")
		}
		return
	}
	currentLog, err := ReadEncrypted(l.li.Filename, l.li.Password)
	if err != nil && errors.Is(err, fs.ErrNotExist) == false {
		return
	}
	WriteEncrypted(l.li.Filename, l.li.Password, append(currentLog, []byte(s+"\n")...))
}

func (l *Logger) LogError(err error) {
	if l.li.Mode&Error == Error {
		toWrite := l.prepareString("[ERROR]", RedColor) + err.Error()
		l.LogString(toWrite)
	}
}

func (l *Logger) LogWarning(warning string) {
	if l.li.Mode&Warning == Warning {
		toWrite := l.prepareString("[WARNING]", YellowColor) + warning
		l.LogString(toWrite)
	}
}

func (l *Logger) LogInfo(info string) {
	if l.li.Mode&Info == Info {
		toWrite := l.prepareString("[INFO]", CyanColor) + info
		l.LogString(toWrite)
	}
}

func (l *Logger) LogDebug(line string) {
	if l.li.Mode&Debug == Debug {
		toWrite := l.prepareString("[DEBUG]", MagentaColor) + line
		l.LogString(toWrite)
	}
}

// ReadEncrypted reads a file written with cryptography.Encrypt.
// An empty password means the file is stored in plaintext.
func ReadEncrypted(filename, password string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return data, nil
	}
	return cryptography.Decrypt(data, password)
}

// WriteEncrypted is the counterpart of ReadEncrypted.
func WriteEncrypted(filename, password string, data []byte) error {
	var err error
	if password != "" {
		data, err = cryptography.Encrypt(data, password)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(filename, data, 0600)
}
