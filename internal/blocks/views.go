package blocks

// FAQItem is one question with its rich-text answer.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQ is the typed form of a faq block.
type FAQ struct {
	Title string    `json:"title"`
	Items []FAQItem `json:"items"`
}

func FAQFromStruct(v *StructValue) FAQ {
	f := FAQ{Title: v.String("title")}
	for _, item := range v.List("item").Items {
		sv, ok := item.(*StructValue)
		if !ok {
			continue
		}
		f.Items = append(f.Items, FAQItem{Question: sv.String("question"), Answer: sv.String("answer")})
	}
	return f
}

// FAQsIn collects every faq block of a stream in order, descending into
// nested streams.
func FAQsIn(s StreamValue) []FAQ {
	var out []FAQ
	for _, c := range s {
		if d := c.Def(); d != nil && d.Key == TypeFAQ {
			if sv, ok := c.Value.(*StructValue); ok {
				out = append(out, FAQFromStruct(sv))
			}
			continue
		}
		if sub, ok := c.Value.(StreamValue); ok {
			out = append(out, FAQsIn(sub)...)
		}
	}
	return out
}

// Contact is the typed form of a contact block.
type Contact struct {
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Website  string `json:"website"`
}

func ContactFromStruct(v *StructValue) Contact {
	return Contact{
		Phone:    v.String("phone"),
		WhatsApp: v.String("whatsapp"),
		Email:    v.String("email"),
		Address:  v.String("address"),
		Website:  v.String("website"),
	}
}

// FirstOfKey returns the value of the first child whose definition key
// is key.
func FirstOfKey(s StreamValue, key string) (*StructValue, bool) {
	for _, c := range s {
		if d := c.Def(); d != nil && d.Key == key {
			sv, ok := c.Value.(*StructValue)
			return sv, ok
		}
	}
	return nil, false
}
