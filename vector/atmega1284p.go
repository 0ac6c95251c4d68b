package vector

import (
	"fmt"
	"strings"
)

// Vector order of the ATmega1284P datasheet, section "Interrupts".
var atmega1284p = newTable("atmega1284p", SymbolPrefix, []entry{
	{"reset", "The reset vector is called when the microcontroller is reset."},
	{"int0", "The external interrupt 0 vector is called when the external interrupt 0 is triggered."},
	{"int1", "The external interrupt 1 vector is called when the external interrupt 1 is triggered."},
	{"int2", "The external interrupt 2 vector is called when the external interrupt 2 is triggered."},
	{"pcint0", "The pin change interrupt 0 vector is called when a pin change interrupt is triggered on pins 7:0."},
	{"pcint1", "The pin change interrupt 1 vector is called when a pin change interrupt is triggered on pins 15:8."},
	{"pcint2", "The pin change interrupt 2 vector is called when a pin change interrupt is triggered on pins 23:16."},
	{"pcint3", "The pin change interrupt 3 vector is called when a pin change interrupt is triggered on pins 31:24."},
	{"wdt", "The watchdog timer vector is called when the watchdog timer times out."},
	{"timer2_compa", "The timer2 compare match A vector is called when the timer2 compare match A is triggered."},
	{"timer2_compb", "The timer2 compare match B vector is called when the timer2 compare match B is triggered."},
	{"timer2_ovf", "The timer2 overflow vector is called when the timer2 overflows."},
	{"timer1_capt", "The timer1 capture event vector is called when the timer1 capture event is triggered."},
	{"timer1_compa", "The timer1 compare match A vector is called when the timer1 compare match A is triggered."},
	{"timer1_compb", "The timer1 compare match B vector is called when the timer1 compare match B is triggered."},
	{"timer1_ovf", "The timer1 overflow vector is called when the timer1 overflows."},
	{"timer0_compa", "The timer0 compare match A vector is called when the timer0 compare match A is triggered."},
	{"timer0_compb", "The timer0 compare match B vector is called when the timer0 compare match B is triggered."},
	{"timer0_ovf", "The timer0 overflow vector is called when the timer0 overflows."},
	{"spi_stc", "The SPI serial transfer complete vector is called when the SPI serial transfer is complete."},
	{"usart0_rx", "The USART0 RX complete vector is called when the USART0 RX is complete."},
	{"usart0_udre", "The USART0 data register empty vector is called when the USART0 data register is empty."},
	{"usart0_tx", "The USART0 TX complete vector is called when the USART0 TX is complete."},
	{"analog_comp", "The analog comparator vector is called when the analog comparator triggers."},
	{"adc", "The ADC conversion complete vector is called when the ADC conversion is complete."},
	{"eeprom_ready", "The EEPROM ready vector is called when the EEPROM is ready."},
	{"twi", "The 2-wire serial interface vector is called when the 2-wire serial interface triggers."},
	{"spm_ready", "The SPM ready vector is called when the SPM is ready."},
	{"usart1_rx", "The USART1 RX complete vector is called when the USART1 RX is complete."},
	{"usart1_udre", "The USART1 data register empty vector is called when the USART1 data register is empty."},
	{"usart1_tx", "The USART1 TX complete vector is called when the USART1 TX is complete."},
	{"timer3_capt", "The timer3 capture event vector is called when the timer3 capture event is triggered."},
	{"timer3_compa", "The timer3 compare match A vector is called when the timer3 compare match A is triggered."},
	{"timer3_compb", "The timer3 compare match B vector is called when the timer3 compare match B is triggered."},
	{"timer3_ovf", "The timer3 overflow vector is called when the timer3 overflows."},
})

// ATmega1284P returns the vector table of the ATmega1284P.
func ATmega1284P() *Table {
	return atmega1284p
}

// Default returns the table used when no device is selected.
func Default() *Table {
	return atmega1284p
}

var builtin = map[string]*Table{
	atmega1284p.device: atmega1284p,
}

// Find returns the built-in table for device. The lookup is case insensitive.
func Find(device string) (*Table, error) {
	if t, ok := builtin[strings.ToLower(device)]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, device)
}
