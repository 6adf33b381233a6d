package config

// AssetSettings is the effective configuration of one coin.
type AssetSettings struct {
	Ignore      bool
	Rate        *float64 // fixed APY percent, nil to follow the market
	Discount    float64
	InvestRatio float64
	Convert     []string
}

// Asset resolves the settings of coin, falling back to General for anything not overridden.
func (c *Config) Asset(coin string) AssetSettings {
	s := AssetSettings{
		Discount:    c.General.Discount,
		InvestRatio: c.General.InvestRatio,
	}
	for _, ignored := range c.General.IgnoreAssets {
		if ignored == coin {
			s.Ignore = true
		}
	}

	a, ok := c.Assets[coin]
	if !ok {
		return s
	}
	s.Ignore = s.Ignore || a.Ignore
	s.Rate = a.Rate
	if a.Discount != nil {
		s.Discount = *a.Discount
	}
	if a.InvestRatio != nil {
		s.InvestRatio = *a.InvestRatio
	}
	s.Convert = a.Convert
	return s
}
