package dashboard

import (
	"fmt"
	"html/template"
	"net/http"

	"listings-analytics/models"
	"listings-analytics/services"
)

type pageData struct {
	Dataset *services.Dataset
	Summary *models.SummaryReport
	Views   models.Views
	Regions []string
	MaxBin  int
	MaxAvg  float64
}

var pageFuncs = template.FuncMap{
	"millions": func(v float64) string { return fmt.Sprintf("%.1f", v/1e6) },
	"pct": func(v, max float64) string {
		if max <= 0 {
			return "0"
		}
		return fmt.Sprintf("%.1f", 100*v/max)
	},
	"float": func(n int) float64 { return float64(n) },
	"rating": func(v *float64) string {
		if v == nil {
			return "—"
		}
		return fmt.Sprintf("%.1f ★", *v)
	},
}

var pageTemplate = template.Must(template.New("index").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Аналитика недвижимости krisha.kz</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
.warn { background: #fff3cd; padding: .6em 1em; border: 1px solid #e0c36a; }
.bar { background: #ffcc66; height: 14px; }
.bar.region { background: #6699cc; }
td { padding: 2px 8px; vertical-align: middle; }
</style>
</head>
<body>
<h1>Аналитика недвижимости по объявлениям krisha.kz</h1>
{{with .Dataset.PrimaryErr}}<p class="warn">База данных недоступна, данные загружены из файла: {{.}}</p>{{end}}
<p>{{.Summary.TotalListings}} объявлений, источник: {{.Dataset.Source}}</p>

<h2>Распределение цен (млн ₸)</h2>
{{if .Views.Distribution.Bins}}
<p>Средняя: {{printf "%.1f" .Views.Distribution.Mean}} млн, медиана: {{printf "%.1f" .Views.Distribution.Median}} млн</p>
<table>
{{range .Views.Distribution.Bins}}<tr><td>{{printf "%.1f" .Low}}–{{printf "%.1f" .High}}</td><td style="width:70%"><div class="bar" style="width:{{pct (float .Count) (float $.MaxBin)}}%"></div></td><td>{{.Count}}</td></tr>
{{end}}</table>
{{else}}<p>Нет цен для построения распределения</p>{{end}}

<h2>Средняя цена по районам</h2>
<table>
{{range .Views.RegionPrices}}<tr><td>{{.Region}}</td><td style="width:60%"><div class="bar region" style="width:{{pct .AveragePrice $.MaxAvg}}%"></div></td><td>{{millions .AveragePrice}} млн</td></tr>
{{end}}</table>

<h2>Цена по отношению к площади</h2>
<p>{{len .Views.PriceArea}} точек, данные: <a href="/api/views/price-area">/api/views/price-area</a></p>

<h2>Оценка цены по параметрам</h2>
<form id="estimate">
<label>Кол-во комнат <input name="rooms" type="number" min="1" max="10" value="2"></label>
<label>Площадь (м²) <input name="area_m2" type="number" min="10" max="1000" step="0.1" value="50"></label>
<label>Этаж <input name="floor" type="number" min="1" max="100" value="5"></label>
<label>Год постройки <input name="year_built" type="number" min="1900" max="2030" value="2015"></label>
<label>Район <select name="region">{{range .Regions}}<option>{{.}}</option>{{end}}</select></label>
<button>Оценить</button>
</form>
<p id="estimate-result"></p>

<h2>Оценка отдельного объявления</h2>
<form id="assess"><input name="link" size="60" placeholder="https://krisha.kz/a/show/..."><button>Оценить объявление</button></form>
<pre id="assess-result"></pre>

<h2>Топ по рейтингу 2GIS</h2>
<ol>{{range .Summary.TopRated}}<li><a href="{{.Link}}">{{.Link}}</a> {{rating .Rating2GIS}}</li>{{end}}</ol>

<script>
document.getElementById("estimate").onsubmit = async (e) => {
  e.preventDefault();
  const f = new FormData(e.target);
  const body = {rooms: +f.get("rooms"), area_m2: +f.get("area_m2"), floor: +f.get("floor"),
    year_built: +f.get("year_built"), region: f.get("region")};
  const r = await fetch("/api/estimate", {method: "POST", body: JSON.stringify(body)});
  const j = await r.json();
  document.getElementById("estimate-result").textContent = r.ok
    ? "Приблизительная цена: " + Math.round(j.price_kzt).toLocaleString("ru") + " ₸"
    : j.error;
};
document.getElementById("assess").onsubmit = async (e) => {
  e.preventDefault();
  const link = new FormData(e.target).get("link");
  const r = await fetch("/api/assessment?link=" + encodeURIComponent(link));
  const j = await r.json();
  document.getElementById("assess-result").textContent = r.ok
    ? JSON.stringify(j, null, 2)
    : "Объявление не найдено в базе данных. Попробуйте вставить другую ссылку!";
};
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	data := pageData{
		Dataset: ds,
		Summary: s.insights.Generate(ds.Listings),
		Views:   s.state.viewsOf(ds),
		Regions: regions(ds.Listings),
	}
	for _, b := range data.Views.Distribution.Bins {
		if b.Count > data.MaxBin {
			data.MaxBin = b.Count
		}
	}
	for _, rp := range data.Views.RegionPrices {
		if rp.AveragePrice > data.MaxAvg {
			data.MaxAvg = rp.AveragePrice
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("[dashboard] Render page: %v", err)
	}
}
