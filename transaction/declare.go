package transaction

import "github.com/mezonai/sawlet/address"

// Declare returns the exact state addresses the ledger reads (inputs) and
// writes or deletes (outputs) when applying op. The platform rejects any
// access outside these sets, so they must track the ledger's behaviour.
func Declare(codec *address.Codec, op Operation) (inputs, outputs []string) {
	switch o := op.(type) {
	case Create:
		a := codec.Address(o.Name)
		return []string{a}, []string{a}
	case Transfer:
		return []string{o.Sender, o.Receiver}, []string{o.Sender, o.Receiver}
	case Change:
		a := codec.Address(o.Name)
		return []string{a}, []string{a}
	case Query:
		return []string{codec.Address(o.Name)}, []string{}
	case Purge:
		a := codec.Address(o.Name)
		return []string{a}, []string{a}
	default:
		return []string{}, []string{}
	}
}
