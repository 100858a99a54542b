package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"learnx_backend/pkg/logger"
	"learnx_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	onlineTTL      = 2 * time.Minute // Redis在线状态过期时间
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type hubClient struct {
	hub     *NotificationHub
	conn    *websocket.Conn
	send    chan []byte
	userID  uint
	limiter *rate.Limiter
}

// NotificationHub 进程内WebSocket推送器。作为Notifier注入
// NotificationService，随进程Run()启动、Stop()停止。
type NotificationHub struct {
	rdb        *redis.Client
	register   chan *hubClient
	unregister chan *hubClient
	clients    map[uint]map[*hubClient]bool
	mu         sync.RWMutex
	done       chan struct{}
	once       sync.Once
}

func NewNotificationHub(rdb *redis.Client) *NotificationHub {
	return &NotificationHub{
		rdb:        rdb,
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		clients:    make(map[uint]map[*hubClient]bool),
		done:       make(chan struct{}),
	}
}

func (h *NotificationHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*hubClient]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			h.markOnline(client.userID)
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok {
				if conns[client] {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
						h.markOffline(client.userID)
					}
				}
			}
			h.mu.Unlock()
		case <-h.done:
			h.mu.Lock()
			for userID, conns := range h.clients {
				for client := range conns {
					close(client.send)
					client.conn.Close()
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *NotificationHub) Stop() {
	h.once.Do(func() {
		close(h.done)
	})
}

// Push 向用户的所有在线连接推送。返回是否至少送达一条连接。
func (h *NotificationHub) Push(userID uint, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("marshal push payload failed", zap.Error(err))
		return false
	}

	h.mu.RLock()
	conns := h.clients[userID]
	delivered := false
	for client := range conns {
		select {
		case client.send <- data:
			delivered = true
		default:
			// 发送缓冲已满，丢弃而不是阻塞业务调用
		}
	}
	h.mu.RUnlock()

	if delivered {
		monitoring.NotificationPushCounter.WithLabelValues("delivered").Inc()
	} else {
		monitoring.NotificationPushCounter.WithLabelValues("offline").Inc()
	}
	return delivered
}

// HandleConnection 升级HTTP连接并注册到Hub，由controller调用
func (h *NotificationHub) HandleConnection(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &hubClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  userID,
		limiter: rate.NewLimiter(30, 50),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		// 通知通道是单向的，客户端消息仅用于保活
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.userID))
			}
			break
		}
		if !c.limiter.Allow() {
			continue
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *NotificationHub) markOnline(userID uint) {
	if h.rdb == nil {
		return
	}
	key := fmt.Sprintf("online:%d", userID)
	if err := h.rdb.Set(context.Background(), key, 1, onlineTTL).Err(); err != nil {
		logger.Log.Warn("mark online failed", zap.Error(err))
	}
}

func (h *NotificationHub) markOffline(userID uint) {
	if h.rdb == nil {
		return
	}
	key := fmt.Sprintf("online:%d", userID)
	if err := h.rdb.Del(context.Background(), key).Err(); err != nil {
		logger.Log.Warn("mark offline failed", zap.Error(err))
	}
}
