package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the sign-up route.
	RouteRegister = "/registro"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteGames lists the whole catalog.
	RouteGames = "/videojuegos"
	// RouteSearch is the name search route.
	RouteSearch = "/buscar"
	// RoutePlayStation is the PlayStation listing.
	RoutePlayStation = "/playstation"
	// RouteXbox is the Xbox listing; POST inserts a game.
	RouteXbox = "/xbox"
	// RouteSteam is the Steam listing; POST deletes a game.
	RouteSteam = "/steam"
	// RouteSwitch is the Switch listing; POST updates a game.
	RouteSwitch = "/switch"

	// RouteAddGame is the admin game creation route.
	RouteAddGame = "/agregar-juego"
	// RouteDeleteGame is the admin game deletion route.
	RouteDeleteGame = "/borrar-juego"
	// RouteEditGame is the admin game edit route.
	RouteEditGame = "/editar-juego"

	// RouteAddToCart adds a game to the session cart.
	RouteAddToCart = "/agregar-carrito"
	// RouteCart shows the session cart.
	RouteCart = "/carrito"
	// RouteRemoveFromCart removes one cart line.
	RouteRemoveFromCart = "/eliminar-carrito"
	// RouteClearCart empties the cart.
	RouteClearCart = "/limpiar-carrito"
	// RouteCheckout shows the payment form.
	RouteCheckout = "/pago"
	// RouteProcessPayment completes checkout.
	RouteProcessPayment = "/procesar-pago"

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteStatic serves uploaded covers from the static directory.
	RouteStatic = "/static"
	// RouteAssets serves the embedded stylesheet.
	RouteAssets = "/assets"
)

// Platform names as stored in the reference table.
const (
	PlatformPlayStation = "PlayStation"
	PlatformXbox        = "Xbox"
	PlatformSteam       = "Steam"
	PlatformSwitch      = "Switch"
)

// Form field names.
const (
	fieldName            = "nombre"
	fieldEmail           = "correo"
	fieldPassword        = "contraseña"
	fieldPasswordConfirm = "contraseña_confirmacion"
	fieldPrice           = "precio"
	fieldGenre           = "genero"
	fieldRating          = "valoracion"
	fieldPlatform        = "consola"
	fieldPlatforms       = "consolas"
	fieldCover           = "portada"
	fieldGameID          = "videojuego_id"
	fieldID              = "id"
	fieldIndex           = "indice"
	fieldPaymentMethod   = "metodo_pago"
)

// Template names.
const (
	pageLogin          = "login"
	pageRegister       = "registro"
	pageGames          = "videojuegos"
	pageAddGame        = "agregar-juego"
	pageEditGame       = "editar-juego"
	pageCart           = "carrito"
	pageCheckout       = "pago"
	pageCheckoutResult = "pago-exitoso"
)
