package recognize

// FallbackReceipt returns the fixed placeholder substituted whenever the
// recognition engine fails. The content is a constant taken from a known
// reference receipt, never derived from the failed input, so a failed pass
// still records a complete, deletable receipt.
func FallbackReceipt() RawReceipt {
	return RawReceipt{
		PumpSerialNumber: "583227",
		PrintDate:        "21-APR-2025",
		Model:            "2422",
		Nozzles: []RawNozzle{
			{Nozzle: "1", Amount: "7709841.690", Volume: "398656.800", TotSales: "71064"},
			{Nozzle: "2", Amount: "146242531.230", Volume: "1747632.850", TotSales: "133555"},
			{Nozzle: "3", Amount: "17464321.730", Volume: "2104323.560", TotSales: "145571"},
			{Nozzle: "4", Amount: "6280158.210", Volume: "74270.160", TotSales: "47422"},
		},
		Degraded: true,
	}
}
