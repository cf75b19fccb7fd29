package seeders

var queuesData = []struct {
	Title string
	Slug  string
	Email string
}{
	{Title: "Soporte", Slug: "soporte", Email: "soporte@example.com"},
	{Title: "Redes", Slug: "redes", Email: "redes@example.com"},
	{Title: "Facturación", Slug: "facturacion", Email: "facturacion@example.com"},
}

var kbData = []struct {
	Category string
	Slug     string
	Items    []string
}{
	{Category: "Redes", Slug: "redes", Items: []string{"Configurar VPN", "Reiniciar router"}},
	{Category: "Impresoras", Slug: "impresoras", Items: []string{"Cambiar tóner"}},
}

// staffData - первый в списке становится суперпользователем.
var staffData = []struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Queues    []string
}{
	{Username: "admin", FirstName: "Ana", LastName: "Gómez", Email: "admin@example.com"},
	{Username: "marta", FirstName: "Marta", LastName: "Ruiz", Email: "marta@example.com", Queues: []string{"soporte", "redes"}},
	{Username: "luis", FirstName: "Luis", LastName: "Pérez", Email: "luis@example.com", Queues: []string{"facturacion"}},
}

// estimatedTimeField - первое кастомное поле тикета, его значение попадает в колонку "tiempoestimado".
const estimatedTimeField = "tiempo_estimado"

var estimates = []string{"30m", "1h", "2h", "4h", "1d"}

var ticketTitles = []string{
	"Impresora sin tóner",
	"VPN no conecta",
	"No llega el correo",
	"Factura duplicada",
	"Router reinicia solo",
	"Alta de usuario nuevo",
	"Pantalla azul al arrancar",
	"Error al exportar informe",
}
