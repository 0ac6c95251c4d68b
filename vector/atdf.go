package vector

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

type atdfFile struct {
	Devices struct {
		Elements []atdfDevice `xml:"device"`
	} `xml:"devices"`
}

type atdfDevice struct {
	Name         string `xml:"name,attr"`
	Architecture string `xml:"architecture,attr"`
	Family       string `xml:"family,attr"`
	Interrupts   struct {
		Elements []atdfInterrupt `xml:"interrupt"`
	} `xml:"interrupts"`
}

type atdfInterrupt struct {
	Name    string      `xml:"name,attr"`
	Index   atdfInteger `xml:"index,attr"`
	Caption string      `xml:"caption,attr,omitempty"`
}

type atdfInteger int64

func (i *atdfInteger) UnmarshalXMLAttr(attr xml.Attr) (err error) {
	var value int64
	strVal := strings.ReplaceAll(attr.Value, "X", "x")
	if strings.Contains(strVal, "0x") {
		strVal = strings.TrimPrefix(strVal, "0x")
		value, err = strconv.ParseInt(strVal, 16, 64)
	} else {
		value, err = strconv.ParseInt(strVal, 10, 64)
	}
	if err != nil {
		return err
	}
	*i = atdfInteger(value)
	return nil
}

// ParseATDF builds a parallel vector table for device from an Atmel device
// description (ATDF) file. Identifiers are the lower-cased interrupt names and
// descriptions are taken from the interrupt captions. When device is empty the
// first device of the file is used.
func ParseATDF(r io.Reader, device string) (*Table, error) {
	var f atdfFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("atdf decode error: %w", err)
	}

	var dev *atdfDevice
	for i := range f.Devices.Elements {
		if device == "" || strings.EqualFold(f.Devices.Elements[i].Name, device) {
			dev = &f.Devices.Elements[i]
			break
		}
	}
	if dev == nil {
		if device == "" {
			return nil, fmt.Errorf("%w: atdf file contains no device", ErrUnknownDevice)
		}
		return nil, fmt.Errorf("%w: %s not found in atdf file", ErrUnknownDevice, device)
	}

	interrupts := dev.Interrupts.Elements
	sort.SliceStable(interrupts, func(i, j int) bool {
		return interrupts[i].Index < interrupts[j].Index
	})

	entries := make([]entry, 0, len(interrupts))
	for i, irq := range interrupts {
		if int(irq.Index) != i {
			return nil, fmt.Errorf("%w: %s: interrupt %q has index %d, expected %d",
				ErrInvalidTable, dev.Name, irq.Name, irq.Index, i)
		}
		entries = append(entries, entry{
			id:   strings.ToLower(irq.Name),
			desc: irq.Caption,
		})
	}

	t := newTable(strings.ToLower(dev.Name), SymbolPrefix, entries)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
