package vector_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isrbind/isrbind/vector"
)

func TestATmega1284PTable(t *testing.T) {
	tbl := vector.ATmega1284P()
	require.NoError(t, tbl.Validate())

	assert.Equal(t, "atmega1284p", tbl.Device())
	assert.Equal(t, "__vector_", tbl.Prefix())
	assert.Equal(t, 35, tbl.Len())

	symbols := map[string]string{}
	for i, d := range tbl.Vectors() {
		assert.Equal(t, i, d.Index)
		assert.Equal(t, "__vector_"+strconv.Itoa(i), d.Symbol)
		assert.NotEmpty(t, d.Description, d.Identifier)

		if prev, dup := symbols[d.Symbol]; dup {
			t.Errorf("symbol %s produced by %s and %s", d.Symbol, prev, d.Identifier)
		}
		symbols[d.Symbol] = d.Identifier

		got, ok := tbl.Lookup(d.Identifier)
		require.True(t, ok, d.Identifier)
		assert.Equal(t, d, got)
	}
}

func TestLookup(t *testing.T) {
	tbl := vector.ATmega1284P()

	tests := []struct {
		identifier string
		index      int
	}{
		{"reset", 0},
		{"int0", 1},
		{"pcint3", 7},
		{"wdt", 8},
		{"timer2_compa", 9},
		{"timer0_ovf", 18},
		{"eeprom_ready", 25},
		{"timer3_ovf", 34},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			d, ok := tbl.Lookup(tt.identifier)
			require.True(t, ok)
			assert.Equal(t, tt.index, d.Index)
			assert.Equal(t, "__vector_"+strconv.Itoa(tt.index), d.Symbol)

			byIdx, ok := tbl.ByIndex(tt.index)
			require.True(t, ok)
			assert.Equal(t, d, byIdx)

			bySym, ok := tbl.BySymbol(d.Symbol)
			require.True(t, ok)
			assert.Equal(t, d, bySym)
		})
	}

	_, ok := tbl.Lookup("timer4_ovf")
	assert.False(t, ok)
	_, ok = tbl.ByIndex(35)
	assert.False(t, ok)
	_, ok = tbl.ByIndex(-1)
	assert.False(t, ok)
}

func TestVectorsReturnsCopy(t *testing.T) {
	tbl := vector.ATmega1284P()
	v := tbl.Vectors()
	v[0].Symbol = "clobbered"

	d, _ := tbl.Lookup("reset")
	assert.Equal(t, "__vector_0", d.Symbol)
}

func TestFind(t *testing.T) {
	tbl, err := vector.Find("ATmega1284P")
	require.NoError(t, err)
	assert.Same(t, vector.ATmega1284P(), tbl)

	_, err = vector.Find("atmega328p")
	assert.ErrorIs(t, err, vector.ErrUnknownDevice)
}

const testATDF = `<?xml version="1.0" encoding="UTF-8"?>
<avr-tools-device-file>
  <devices>
    <device name="ATtinyTest" architecture="AVR8" family="tinyAVR">
      <interrupts>
        <interrupt index="0" name="RESET" caption="External Pin, Power-on Reset"/>
        <interrupt index="2" name="PCINT0" caption="Pin Change Interrupt Request 0"/>
        <interrupt index="1" name="INT0" caption="External Interrupt Request 0"/>
        <interrupt index="0x3" name="TIMER0_OVF" caption="Timer/Counter0 Overflow"/>
      </interrupts>
    </device>
  </devices>
</avr-tools-device-file>`

func TestParseATDF(t *testing.T) {
	tbl, err := vector.ParseATDF(strings.NewReader(testATDF), "attinytest")
	require.NoError(t, err)

	assert.Equal(t, "attinytest", tbl.Device())
	require.Equal(t, 4, tbl.Len())

	d, ok := tbl.Lookup("timer0_ovf")
	require.True(t, ok)
	assert.Equal(t, 3, d.Index)
	assert.Equal(t, "__vector_3", d.Symbol)
	assert.Equal(t, "Timer/Counter0 Overflow", d.Description)

	d, ok = tbl.ByIndex(1)
	require.True(t, ok)
	assert.Equal(t, "int0", d.Identifier)
}

func TestParseATDFErrors(t *testing.T) {
	_, err := vector.ParseATDF(strings.NewReader(testATDF), "atmega8")
	assert.ErrorIs(t, err, vector.ErrUnknownDevice)

	gap := strings.Replace(testATDF, `index="0x3"`, `index="5"`, 1)
	_, err = vector.ParseATDF(strings.NewReader(gap), "")
	assert.ErrorIs(t, err, vector.ErrInvalidTable)

	dup := strings.Replace(testATDF, `name="INT0"`, `name="RESET"`, 1)
	_, err = vector.ParseATDF(strings.NewReader(dup), "")
	assert.ErrorIs(t, err, vector.ErrInvalidTable)

	_, err = vector.ParseATDF(strings.NewReader("<not-closed"), "")
	assert.Error(t, err)
}
