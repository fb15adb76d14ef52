package sources

// defaultSources is the built-in registry used when no sources file is
// configured. Entry URLs point at the public event listings of the Taiwan
// Blood Services Foundation regional centers plus the supplementary social
// and image-search sources.
func defaultSources() []Source {
	return []Source{
		{
			ID:         "tp-blood",
			Kind:       KindWeb,
			Name:       "台北捐血中心",
			EntryURL:   "https://www.tp.blood.org.tw/Internet/taipei/mobile_list.aspx",
			BaseURL:    "https://www.tp.blood.org.tw",
			City:       "台北市",
			RequiresJS: true,
		},
		{
			ID:         "hc-blood",
			Kind:       KindWeb,
			Name:       "新竹捐血中心",
			EntryURL:   "https://www.sc.blood.org.tw/Internet/hsinchu/mobile_list.aspx",
			BaseURL:    "https://www.sc.blood.org.tw",
			City:       "新竹市",
			RequiresJS: true,
		},
		{
			ID:         "tc-blood",
			Kind:       KindWeb,
			Name:       "台中捐血中心",
			EntryURL:   "https://www.tc.blood.org.tw/Internet/Taichung/mobile_list.aspx",
			BaseURL:    "https://www.tc.blood.org.tw",
			City:       "台中市",
			RequiresJS: true,
		},
		{
			ID:         "ks-blood",
			Kind:       KindWeb,
			Name:       "高雄捐血中心",
			EntryURL:   "https://www.ks.blood.org.tw/Internet/Kaohsiung/mobile_list.aspx",
			BaseURL:    "https://www.ks.blood.org.tw",
			City:       "高雄市",
			RequiresJS: true,
		},
		{
			ID:         "fb-blood",
			Kind:       KindSocial,
			Name:       "捐血活動粉絲頁",
			EntryURL:   "https://www.facebook.com/ibloodnet",
			BaseURL:    "https://www.facebook.com",
			RequiresJS: true,
		},
		{
			ID:       "img-search",
			Kind:     KindSearch,
			Name:     "捐血活動海報搜尋",
			EntryURL: "https://www.bing.com/images/search?q=%E6%8D%90%E8%A1%80%E6%B4%BB%E5%8B%95%E6%B5%B7%E5%A0%B1",
			BaseURL:  "https://www.bing.com",
		},
	}
}
