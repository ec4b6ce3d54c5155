package billing

// ProcessorFee estimates the card processor's cut for a charge:
// 2.9% of the amount, rounded down, plus a 30 cent flat fee.
// Pure integer arithmetic so the ledger never sees float drift.
func ProcessorFee(amountCents int64) int64 {
	if amountCents < 0 {
		return 30
	}
	return amountCents*29/1000 + 30
}

// NetRevenue is the amount remaining after the processor fee.
func NetRevenue(amountCents int64) int64 {
	return amountCents - ProcessorFee(amountCents)
}
