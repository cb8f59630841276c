package fixtures

// KyivCurrentWeather is an OpenWeatherMap /data/2.5/weather payload (metric).
const KyivCurrentWeather = `{
  "coord": {"lon": 30.5238, "lat": 50.4547},
  "weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
  "base": "stations",
  "main": {
    "temp": 21.7,
    "feels_like": 21.2,
    "temp_min": 20.4,
    "temp_max": 23.1,
    "pressure": 1016,
    "humidity": 48
  },
  "visibility": 10000,
  "wind": {"speed": 3.4, "deg": 250},
  "clouds": {"all": 0},
  "dt": 1718274000,
  "sys": {"type": 2, "id": 2003742, "country": "UA", "sunrise": 1718243160, "sunset": 1718302140},
  "timezone": 10800,
  "id": 703448,
  "name": "Kyiv",
  "cod": 200
}`

// CalmWeather has a wind speed that rounds to zero.
const CalmWeather = `{
  "coord": {"lon": 24.0232, "lat": 49.8383},
  "weather": [{"id": 701, "main": "Mist", "description": "mist", "icon": "50n"}],
  "main": {"temp": 9.4, "feels_like": 9.4, "temp_min": 8.9, "temp_max": 10.2, "pressure": 1021, "humidity": 93},
  "wind": {"speed": 0.4, "deg": 90},
  "dt": 1718240000,
  "sys": {"country": "UA", "sunrise": 1718243900, "sunset": 1718303300},
  "timezone": 10800,
  "name": "Lviv",
  "cod": 200
}`

// NoConditionWeather has an empty "weather" array.
const NoConditionWeather = `{
  "coord": {"lon": 30.5238, "lat": 50.4547},
  "weather": [],
  "main": {"temp": 15.0, "feels_like": 14.0, "temp_min": 14.0, "temp_max": 16.0, "pressure": 1010, "humidity": 60},
  "wind": {"speed": 2.0, "deg": 0},
  "dt": 1718274000,
  "sys": {"country": "UA", "sunrise": 1718243160, "sunset": 1718302140},
  "name": "Kyiv"
}`

// KyivSearch is an OpenWeatherMap /geo/1.0/direct payload for "Kyiv".
const KyivSearch = `[
  {"name": "Kyiv", "local_names": {"uk": "Київ", "en": "Kyiv"}, "lat": 50.4500336, "lon": 30.5241361, "country": "UA", "state": "Kyiv"},
  {"name": "Kyiv", "lat": 50.4546, "lon": 30.5238, "country": "UA"},
  {"name": "Kyiv Oblast", "lat": 50.0529, "lon": 30.7667, "country": "UA", "state": "Kyiv Oblast"}
]`

// EmptySearch is a search with no matches.
const EmptySearch = `[]`

// InvalidJSON is a malformed body.
const InvalidJSON = `{"invalid": json}`

// NotFound is the error body OpenWeatherMap returns for unknown places.
const NotFound = `{"cod": "404", "message": "city not found"}`

// InvalidAPIKey is the error body OpenWeatherMap returns for a bad key.
const InvalidAPIKey = `{"cod": 401, "message": "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."}`
