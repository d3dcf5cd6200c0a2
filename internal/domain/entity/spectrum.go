package entity

// Peak - одна полоса синтетического спектра
type Peak struct {
	Position  float64 `json:"position"`
	Intensity float64 `json:"intensity"`
	Width     float64 `json:"width"`
}

// SpectrumParams описывает синтетический спектр, который вопрос может показать вместо картинки
type SpectrumParams struct {
	Kind  string  `json:"kind"` // "IR", "1H NMR", "13C NMR", "MS"
	XMin  float64 `json:"x_min"`
	XMax  float64 `json:"x_max"`
	Peaks []Peak  `json:"peaks"`
}

// SpectrumPoint - точка кривой спектра
type SpectrumPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series строит кривую из n точек как сумму лоренцевых пиков на [XMin, XMax].
// Рисование кривой остаётся задачей клиента.
func (s *SpectrumParams) Series(n int) []SpectrumPoint {
	if s == nil || n < 2 {
		return nil
	}
	points := make([]SpectrumPoint, n)
	step := (s.XMax - s.XMin) / float64(n-1)
	for i := 0; i < n; i++ {
		x := s.XMin + step*float64(i)
		y := 0.0
		for _, p := range s.Peaks {
			w := p.Width
			if w <= 0 {
				w = 1
			}
			d := (x - p.Position) / (w / 2)
			y += p.Intensity / (1 + d*d)
		}
		points[i] = SpectrumPoint{X: x, Y: y}
	}
	return points
}
