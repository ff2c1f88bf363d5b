package catalog

// ECOS covers the Korean indicators pulled from the Bank of Korea Economic
// Statistics System. Codes are "STAT_CODE/ITEM_CODE" pairs; the stat code
// prefix also determines the series cadence on the wire.
var ECOS = New(SourceECOS, []Category{
	{Name: "Rates", Entries: []Entry{
		{Code: "722Y001/010101000", Name: "Bank of Korea Base Rate", Cadence: CadenceDaily},
		{Code: "817Y002/010200000", Name: "Call Rate (Overnight)", Cadence: CadenceDaily},
		{Code: "817Y002/010101000", Name: "CD Rate 91-Day", Cadence: CadenceDaily},
		{Code: "817Y002/010502000", Name: "Korea Treasury Bond 3Y", Cadence: CadenceDaily},
		{Code: "817Y002/010503000", Name: "Korea Treasury Bond 5Y", Cadence: CadenceDaily},
		{Code: "817Y002/010504000", Name: "Korea Treasury Bond 10Y", Cadence: CadenceDaily},
		{Code: "817Y002/010500000", Name: "Korea Treasury Bond 1Y", Cadence: CadenceDaily},
	}},
	{Name: "FX", Entries: []Entry{
		{Code: "731Y001/0000001", Name: "KRW/USD Exchange Rate", Cadence: CadenceDaily},
		{Code: "731Y001/0000002", Name: "KRW/JPY (100) Exchange Rate", Cadence: CadenceDaily},
		{Code: "731Y001/0000003", Name: "KRW/EUR Exchange Rate", Cadence: CadenceDaily},
		{Code: "731Y001/0000053", Name: "KRW/CNY Exchange Rate", Cadence: CadenceDaily},
	}},
	{Name: "Inflation", Entries: []Entry{
		{Code: "021Y126/0", Name: "Consumer Price Index", Cadence: CadenceMonthly},
		{Code: "021Y126/AAC", Name: "Core CPI ex Agriculture & Oil", Cadence: CadenceMonthly},
		{Code: "021Y126/AB", Name: "Living Necessaries Price Index", Cadence: CadenceMonthly},
		{Code: "013Y126/0000", Name: "Producer Price Index", Cadence: CadenceMonthly},
	}},
	{Name: "Activity", Entries: []Entry{
		{Code: "512Y040/I16A", Name: "Coincident Composite Index", Cadence: CadenceMonthly},
		{Code: "512Y040/I16B", Name: "Leading Composite Index", Cadence: CadenceMonthly},
		{Code: "512Y040/I16C", Name: "Lagging Composite Index", Cadence: CadenceMonthly},
		{Code: "512Y040/I16AA", Name: "Coincident Index Cyclical Component", Cadence: CadenceMonthly},
		{Code: "512Y040/I16BB", Name: "Leading Index Cyclical Component", Cadence: CadenceMonthly},
	}},
	{Name: "Money Supply", Entries: []Entry{
		{Code: "101Y018/BBHA", Name: "M1 Narrow Money", Cadence: CadenceMonthly},
		{Code: "101Y018/BBHB", Name: "M2 Broad Money", Cadence: CadenceMonthly},
		{Code: "101Y018/BBHD", Name: "Lf Liquidity Aggregate", Cadence: CadenceMonthly},
	}},
	{Name: "Trade", Entries: []Entry{
		{Code: "301Y013/SA000", Name: "Current Account Balance", Cadence: CadenceMonthly},
		{Code: "301Y013/SB000", Name: "Goods Balance", Cadence: CadenceMonthly},
		{Code: "403Y001/AA", Name: "Exports Value", Cadence: CadenceMonthly},
		{Code: "403Y001/AB", Name: "Imports Value", Cadence: CadenceMonthly},
	}},
})
