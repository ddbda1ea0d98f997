package main

import (
	"fmt"
	"os"
	"path/filepath"

	"shroud/stegano/img"
	"shroud/stegano/payload"
	stutil "shroud/stegano/util"
	"shroud/util"
)

func (a *app) readKey(key string) (string, error) {
	if key == "" {
		var err error
		if key, err = util.GetPasswd("Key: "); err != nil {
			return "", fmt.Errorf("Failed to read key from stdin: %w", err)
		}
	}
	return stutil.FixUnicode(key), nil
}

func (a *app) options(noNoise bool) (img.Options, error) {
	opts, err := a.conf.ImageOptions()
	if err != nil {
		return opts, err
	}
	if noNoise {
		opts.Filter = img.FilterNone
	}
	return opts, nil
}

func (a *app) progress() *img.Progress {
	return img.NewProgress(func(percent int) {
		a.logger.LogDebug(fmt.Sprintf("%d%%", percent))
	})
}

func (a *app) newPayload(key string) *payload.Payload {
	p := payload.New()
	p.SetPassword(key)
	p.LengthBytes = a.conf.StegConfig.LengthBytes
	return p
}

func (a *app) embed(args []string) error {
	fs, debug := a.newFlags("embed")
	message := fs.String("m", "", "message to embed")
	var files []string
	fs.Func("f", "file to embed, may be repeated", func(s string) error {
		files = append(files, s)
		return nil
	})
	key := fs.String("k", "", "secret key used for encryption and hiding")
	output := fs.String("o", "", "where to write the steganogram")
	visualize := fs.String("visualize", "", "write a PNG marking the touched points")
	noNoise := fs.Bool("disable-noise-detection", false, "do not avoid homogeneous areas")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || (*message == "" && len(files) == 0) {
		return errUsage
	}
	if err := a.setup(*debug); err != nil {
		return err
	}
	path := fs.Arg(0)

	secret, err := a.readKey(*key)
	if err != nil {
		return err
	}
	p := a.newPayload(secret)
	if *message != "" {
		p.AddBlock(payload.NewMessageBlock(stutil.FixUnicode(*message)))
	}
	for _, f := range files {
		block, err := payload.LoadFileBlock(f)
		if err != nil {
			return fmt.Errorf("Failed to read %s: %w", f, err)
		}
		p.AddBlock(block)
	}

	carrier, err := img.Load(path)
	if err != nil {
		return err
	}
	opts, err := a.options(*noNoise)
	if err != nil {
		return err
	}
	method, err := img.NewMethod(carrier, opts)
	if err != nil {
		return err
	}

	a.logger.LogInfo("Embedding data...")
	result, err := method.Embed(p, a.progress())
	if err != nil {
		return err
	}
	if *output == "" {
		*output = img.OutputPath(path, a.conf.StegConfig.OutputSuffix)
	}
	if err = img.Save(result, *output); err != nil {
		return err
	}
	a.logger.LogInfo("Embedding completed, steganogram saved to " + *output)

	if *visualize != "" {
		if err = a.writeVisualization(method, *visualize); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeVisualization(method img.Method, path string) error {
	v := method.Visualizer()
	if v == nil {
		a.logger.LogWarning("The embedding method of this format does not support visualization")
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0660)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = v.WritePNG(f); err != nil {
		return err
	}
	visited, altered := v.Counts()
	a.logger.LogInfo(fmt.Sprintf("Visualization saved to %s (%d points visited, %d altered)", path, visited, altered))
	return nil
}

func (a *app) extract(args []string) error {
	fs, debug := a.newFlags("extract")
	key := fs.String("k", "", "secret key used for encryption and hiding")
	output := fs.String("o", "", "folder to store extracted files")
	noNoise := fs.Bool("disable-noise-detection", false, "the image was embedded without noise detection")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	if err := a.setup(*debug); err != nil {
		return err
	}
	path := fs.Arg(0)

	secret, err := a.readKey(*key)
	if err != nil {
		return err
	}
	carrier, err := img.Load(path)
	if err != nil {
		return err
	}
	opts, err := a.options(*noNoise)
	if err != nil {
		return err
	}
	method, err := img.NewMethod(carrier, opts)
	if err != nil {
		return err
	}

	a.logger.LogInfo("Extracting data...")
	p := a.newPayload(secret)
	if err = method.Extract(p, a.progress()); err != nil {
		return err
	}
	a.logger.LogInfo("Extracting completed")

	if message := p.Messages(); message != "" {
		fmt.Fprintln(a.stdout, message)
	}
	dir := *output
	if dir == "" {
		dir = filepath.Dir(path)
	}
	for _, f := range p.Files() {
		saved, err := f.SaveTo(dir)
		if err != nil {
			return err
		}
		a.logger.LogInfo("Extracted file saved to " + saved)
	}
	return nil
}

func (a *app) capacity(args []string) error {
	fs, debug := a.newFlags("capacity")
	noNoise := fs.Bool("disable-noise-detection", false, "do not avoid homogeneous areas")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	if err := a.setup(*debug); err != nil {
		return err
	}
	opts, err := a.options(*noNoise)
	if err != nil {
		return err
	}

	var paths []string
	for _, arg := range fs.Args() {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			found, err := util.ReadFiles(arg, append(img.SupportedFormats(), "jpeg"))
			if err != nil {
				return err
			}
			paths = append(paths, found...)
			continue
		}
		paths = append(paths, arg)
	}

	for _, path := range paths {
		carrier, err := img.Load(path)
		if err != nil {
			return err
		}
		method, err := img.NewMethod(carrier, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s: %s\n", path, formatSize(method.Capacity()))
	}
	return nil
}

func (a *app) readLog(args []string) error {
	fs, debug := a.newFlags("readlog")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(*debug); err != nil {
		return err
	}
	if a.conf.Logger.Filename == "" {
		return fmt.Errorf("no log file configured, the log goes to stderr")
	}
	logs, err := util.ReadLog(a.conf.Logger.Filename, a.conf.Logger.Password)
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, logs)
	return nil
}

func (a *app) editConfig(args []string) error {
	fs, debug := a.newFlags("editconf")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.setup(*debug); err != nil {
		return err
	}
	if err := util.EditConfig(a.configFile, a.configPassword); err != nil {
		return err
	}
	// refuse to leave a broken configuration unnoticed
	if err := a.setup(false); err != nil {
		return err
	}
	a.logger.LogInfo("Configuration saved to " + a.configFile)
	return nil
}
