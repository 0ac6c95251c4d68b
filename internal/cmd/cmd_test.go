package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/isrbind/isrbind/internal/codegen/generator"
	"github.com/isrbind/isrbind/internal/configpaths"
	"github.com/isrbind/isrbind/internal/log"
	"github.com/isrbind/isrbind/transform"
	"github.com/isrbind/isrbind/vector"
)

const testATDF = `<?xml version="1.0" encoding="UTF-8"?>
<avr-tools-device-file>
  <devices>
    <device name="ATtinyTest" architecture="AVR8" family="tinyAVR">
      <interrupts>
        <interrupt index="0" name="RESET" caption="Reset"/>
        <interrupt index="1" name="INT0" caption="External Interrupt Request 0"/>
        <interrupt index="2" name="TIM0_OVF" caption="Timer/Counter0 Overflow"/>
      </interrupts>
    </device>
  </devices>
</avr-tools-device-file>`

const firmwareSrc = `package firmware

var ticks int

//isr:interrupt_handler_timer0_ovf
func onOverflow() {
	ticks++
}
`

func quietLogger() *slog.Logger {
	return log.New(slog.LevelError, nil, io.Discard)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTableOptionsLoad(t *testing.T) {
	tbl, err := TableOptions{}.Load()
	require.NoError(t, err)
	assert.Equal(t, vector.Default().Device(), tbl.Device())

	tbl, err = TableOptions{Device: "ATmega1284P"}.Load()
	require.NoError(t, err)
	assert.Equal(t, 35, tbl.Len())

	_, err = TableOptions{Device: "atmega328p"}.Load()
	assert.ErrorIs(t, err, vector.ErrUnknownDevice)

	path := filepath.Join(t.TempDir(), "ATtinyTest.atdf")
	writeFile(t, path, testATDF)
	tbl, err = TableOptions{ATDF: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, "attinytest", tbl.Device())
	v, ok := tbl.Lookup("tim0_ovf")
	require.True(t, ok)
	assert.Equal(t, "__vector_2", v.Symbol)

	_, err = TableOptions{ATDF: filepath.Join(t.TempDir(), "missing.atdf")}.Load()
	assert.Error(t, err)
}

func TestDialectOptions(t *testing.T) {
	d, err := DialectOptions{}.Dialect()
	require.NoError(t, err)
	assert.Equal(t, transform.SigoDialect, d)

	d, err = DialectOptions{Linkage: "//go:linkname {symbol}"}.Dialect()
	require.NoError(t, err)
	assert.Equal(t, "custom", d.Name)
	assert.Equal(t, transform.SigoDialect.Convention, d.Convention)
	assert.Equal(t, "//go:linkname {symbol}", d.Linkage)

	_, err = DialectOptions{Convention: "interrupt"}.Dialect()
	assert.Error(t, err)
}

func TestBind(t *testing.T) {
	tests := []struct {
		name       string
		entryPoint string
		want       string
	}{
		{name: "full name", entryPoint: "interrupt_handler_timer0_ovf", want: "__vector_18"},
		{name: "bare identifier", entryPoint: "usart0_rx", want: "__vector_20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &Bind{EntryPoint: tt.entryPoint}
			err := c.run(quietLogger(), strings.NewReader("func handler() { set_flag() }"), &out)
			require.NoError(t, err)

			s := out.String()
			assert.Contains(t, s, "//sigo:interrupt "+tt.want+" "+tt.want+"\n")
			assert.Contains(t, s, "//sigo:export "+tt.want+" "+tt.want+"\n")
			assert.Contains(t, s, "func "+tt.want+"() { set_flag() }")
		})
	}
}

func TestBindFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handler.go")
	writeFile(t, path, "func onADC(sample uint16) error {\n\tstore(sample)\n\treturn nil\n}\n")

	var out bytes.Buffer
	c := &Bind{
		EntryPoint: "adc",
		File:       path,
		Dialect:    DialectOptions{Convention: "//avr:signal {symbol}"},
	}
	require.NoError(t, c.run(quietLogger(), strings.NewReader(""), &out))
	assert.True(t, strings.HasPrefix(out.String(), "//avr:signal __vector_24\n//sigo:export __vector_24 __vector_24\nfunc __vector_24() {"), out.String())
}

func TestBindErrors(t *testing.T) {
	var out bytes.Buffer

	err := (&Bind{EntryPoint: "timer5_ovf"}).run(quietLogger(), strings.NewReader("func h() {}"), &out)
	assert.ErrorIs(t, err, transform.ErrUnknownEntryPoint)

	err = (&Bind{EntryPoint: "wdt"}).run(quietLogger(), strings.NewReader("type handler struct{}"), &out)
	assert.ErrorIs(t, err, transform.ErrMalformedInput)
	assert.True(t, strings.HasPrefix(err.Error(), "<stdin>:1:"), err.Error())

	assert.Empty(t, out.String())
}

func TestVectorsFormats(t *testing.T) {
	c := &Vectors{}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, c.run(quietLogger(), &out, "json"))

		var doc tableDoc
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, "atmega1284p", doc.Device)
		require.Len(t, doc.Vectors, 35)
		assert.Equal(t, vectorDoc{
			Identifier:  "timer0_ovf",
			EntryPoint:  "interrupt_handler_timer0_ovf",
			Index:       18,
			Symbol:      "__vector_18",
			Description: doc.Vectors[18].Description,
		}, doc.Vectors[18])
		assert.NotEmpty(t, doc.Vectors[18].Description)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, c.run(quietLogger(), &out, "yaml"))

		var doc tableDoc
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
		require.Len(t, doc.Vectors, 35)
		assert.Equal(t, "interrupt_handler_reset", doc.Vectors[0].EntryPoint)
	})

	t.Run("toml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, c.run(quietLogger(), &out, "toml"))

		tree, err := toml.LoadBytes(out.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "atmega1284p", tree.Get("device"))
		assert.Contains(t, out.String(), "[[vectors]]")
	})

	t.Run("markdown", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, c.run(quietLogger(), &out, "markdown"))
		assert.Contains(t, out.String(), "| 18 | `__vector_18` | `interrupt_handler_timer0_ovf` |")
		assert.Equal(t, 35+4, strings.Count(out.String(), "\n"))
	})

	t.Run("text", func(t *testing.T) {
		pterm.DisableStyling()
		defer pterm.EnableStyling()

		var out bytes.Buffer
		require.NoError(t, c.run(quietLogger(), &out, "text"))
		assert.Contains(t, out.String(), "atmega1284p (35 vectors)")
		assert.Contains(t, out.String(), "interrupt_handler_timer3_ovf")
		assert.Contains(t, out.String(), "__vector_34")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, c.run(quietLogger(), io.Discard, "xml"))
	})
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	handler := filepath.Join(dir, "timer.go")
	writeFile(t, handler, firmwareSrc)

	c := &Generate{Inputs: []string{dir}}
	require.NoError(t, c.run(context.Background(), quietLogger(), io.Discard))

	out := filepath.Join(dir, generator.DefaultOutputName)
	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package firmware")
	assert.Contains(t, string(src), "//sigo:export __vector_18 __vector_18\nfunc __vector_18() {\n\tticks++\n}")

	// The previous output is not scanned again, so a rerun is up to date.
	check := &Generate{Inputs: []string{dir}, Check: true}
	require.NoError(t, check.run(context.Background(), quietLogger(), io.Discard))

	writeFile(t, handler, strings.Replace(firmwareSrc, "ticks++", "ticks += 2", 1))
	err = check.run(context.Background(), quietLogger(), io.Discard)
	assert.ErrorIs(t, err, generator.ErrStale)
}

func TestGenerateToStdout(t *testing.T) {
	dir := t.TempDir()
	handler := filepath.Join(dir, "timer.go")
	writeFile(t, handler, firmwareSrc)

	var out bytes.Buffer
	c := &Generate{Inputs: []string{handler}, Output: "-", Package: "vectors"}
	require.NoError(t, c.run(context.Background(), quietLogger(), &out))
	assert.Contains(t, out.String(), "package vectors")
	assert.NoFileExists(t, filepath.Join(dir, generator.DefaultOutputName))
}

func TestGenerateWithoutInputs(t *testing.T) {
	c := &Generate{Inputs: []string{t.TempDir()}}
	assert.Error(t, c.run(context.Background(), quietLogger(), io.Discard))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	dest := filepath.Join(dir, "generate.json")
	c := &ConfigInit{Command: "generate", Format: "json", Output: dest}
	require.NoError(t, c.Run(quietLogger()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))

	assert.NotContains(t, root, "inputs")
	assert.Equal(t, false, root["check"])
	assert.Equal(t, []any{}, root["tags"])
	assert.Contains(t, root, "atdf")
	assert.Equal(t, map[string]any{"convention": "", "linkage": ""}, root["dialect"])
	assert.Equal(t, map[string]any{"level": "info", "file": ""}, root["log"])

	err = c.Run(quietLogger())
	assert.Error(t, err, "existing file must not be overwritten")
	c.Force = true
	assert.NoError(t, c.Run(quietLogger()))
}

func TestConfigInitDefaultIsLoaded(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	c := &ConfigInit{Command: "generate", Format: "yaml"}
	require.NoError(t, c.Run(quietLogger()))
	assert.FileExists(t, filepath.Join(dir, "isrbind.yaml"))

	_, yamlPaths, _ := configpaths.ConfigCandidatePaths("")
	assert.Contains(t, yamlPaths, filepath.Join(dir, "isrbind.yaml"))
}

func TestBindByteOrderMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handler.go")
	writeFile(t, path, "\uFEFFfunc onTWI() {\n\tack()\n}\n")

	var out bytes.Buffer
	require.NoError(t, (&Bind{EntryPoint: "twi", File: path}).run(quietLogger(), strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "func __vector_26() {\n\tack()\n}")
}

func TestConfigInitFormats(t *testing.T) {
	dir := t.TempDir()

	c := &ConfigInit{Command: "vectors", Format: "yml", Output: filepath.Join(dir, "vectors.yaml")}
	require.NoError(t, c.Run(quietLogger()))
	data, err := os.ReadFile(c.Output)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, yaml.Unmarshal(data, &root))
	assert.Equal(t, "auto", root["format"])

	c = &ConfigInit{Command: "bind", Format: "toml", Output: filepath.Join(dir, "bind.toml")}
	require.NoError(t, c.Run(quietLogger()))
	tree, err := toml.LoadFile(c.Output)
	require.NoError(t, err)
	assert.False(t, tree.Has("entry_point"))
	assert.True(t, tree.Has("dialect.linkage"))
	assert.Equal(t, "info", tree.Get("log.level"))
}

func TestWritesStdout(t *testing.T) {
	c := &CLI{}
	assert.True(t, c.WritesStdout("bind <entry-point>"))
	assert.True(t, c.WritesStdout("vectors"))
	assert.False(t, c.WritesStdout("generate"))
	assert.False(t, c.WritesStdout("config init <command>"))

	c.Generate.Output = "-"
	assert.True(t, c.WritesStdout("generate <inputs>"))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&Version{}).run(&out))
	assert.True(t, strings.HasPrefix(out.String(), "isrbind "))
}
