package console

import "github.com/robotalks/pinsh/pkg/hal"

// Bus defaults used when spistart arguments are not recognized.
const (
	DefaultClockHz    uint32 = 4000000
	DefaultBitOrder          = hal.MSBFirst
	DefaultSPIMode           = hal.Mode0
	DefaultChipSelect        = 10
)

// Transaction tracks the open/closed state of the SPI bus and
// enforces start, transfer, end ordering.
type Transaction struct {
	ChipSelect int
	ClockHz    uint32

	pins   hal.Pins
	spi    hal.SPI
	active bool
	order  hal.BitOrder
	mode   hal.SPIMode
}

// NewTransaction creates an inactive Transaction.
func NewTransaction(pins hal.Pins, spi hal.SPI) *Transaction {
	return &Transaction{
		ChipSelect: DefaultChipSelect,
		ClockHz:    DefaultClockHz,
		pins:       pins,
		spi:        spi,
	}
}

// Active indicates a transaction is open.
func (t *Transaction) Active() bool {
	return t.active
}

// Settings returns the bit order and mode of the open transaction.
func (t *Transaction) Settings() (hal.BitOrder, hal.SPIMode) {
	return t.order, t.mode
}

// Start asserts chip-select (low) and begins a bus transaction.
func (t *Transaction) Start(order hal.BitOrder, mode hal.SPIMode) error {
	if t.active {
		return ErrTransactionActive
	}
	t.pins.SetMode(t.ChipSelect, hal.Output)
	t.pins.Write(t.ChipSelect, hal.Low)
	t.spi.BeginTransaction(t.ClockHz, order, mode)
	t.active, t.order, t.mode = true, order, mode
	return nil
}

// Transfer exchanges one byte.
func (t *Transaction) Transfer(b byte) (byte, error) {
	if !t.active {
		return 0, ErrNoTransaction
	}
	return t.spi.TransferByte(b), nil
}

// Transfer16 exchanges a 16-bit word.
func (t *Transaction) Transfer16(w uint16) (uint16, error) {
	if !t.active {
		return 0, ErrNoTransaction
	}
	return t.spi.TransferWord(w), nil
}

// End de-asserts chip-select and closes the transaction.
func (t *Transaction) End() error {
	if !t.active {
		return ErrNoTransaction
	}
	t.pins.Write(t.ChipSelect, hal.High)
	t.spi.EndTransaction()
	t.active = false
	return nil
}
