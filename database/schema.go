package database

// SourceSchema schéma du système opérationnel de commande de repas.
// Chaque table extraite porte un index (created_at, id) pour la pagination par clé.
const SourceSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	username   VARCHAR(100) NOT NULL UNIQUE,
	email      VARCHAR(255),
	role       VARCHAR(30),
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_created_at_id ON users (created_at, id);

CREATE TABLE IF NOT EXISTS restaurants (
	id         BIGSERIAL PRIMARY KEY,
	name       VARCHAR(200),
	category   VARCHAR(100),
	city       VARCHAR(100),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_restaurants_created_at_id ON restaurants (created_at, id);

CREATE TABLE IF NOT EXISTS coupons (
	id               BIGSERIAL PRIMARY KEY,
	code             VARCHAR(50) NOT NULL UNIQUE,
	discount_percent NUMERIC(5,2) NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id            BIGSERIAL PRIMARY KEY,
	customer_id   BIGINT REFERENCES users(id),
	restaurant_id BIGINT REFERENCES restaurants(id),
	coupon_id     BIGINT REFERENCES coupons(id),
	status        VARCHAR(20) NOT NULL,
	total_amount  NUMERIC(20,4),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	delivered_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at_id ON orders (created_at, id);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_restaurant ON orders (restaurant_id);

CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	name       VARCHAR(200) NOT NULL,
	quantity   INT NOT NULL,
	unit_price NUMERIC(20,4) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id);

CREATE TABLE IF NOT EXISTS payment_transactions (
	id             BIGSERIAL PRIMARY KEY,
	order_id       BIGINT REFERENCES orders(id),
	amount         NUMERIC(20,4),
	payment_method VARCHAR(30) NOT NULL,
	status         VARCHAR(20) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_payment_transactions_created_at_id ON payment_transactions (created_at, id);
`
