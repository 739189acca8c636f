package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"
	// roleAnchor 空角色也需要一条 g 记录才能被列出
	roleAnchor = "role:__anchor__"
)

// 后台路由鉴权模型：路径使用 keyMatch2 匹配 gin 的 :param 模式
const adminRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	ErrUnavailable    = errors.New("authz service unavailable")
	ErrRoleRequired   = errors.New("role is required")
	ErrReservedRole   = errors.New("reserved role is not allowed")
	ErrBuiltinRole    = errors.New("builtin role is immutable")
	ErrActionRequired = errors.New("action is required")
	ErrAdminRequired  = errors.New("admin id is required")
)

// Policy 权限策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

func (p Policy) key() string {
	return p.Subject + "|" + p.Object + "|" + p.Action
}

// Service 后台 RBAC 服务，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
	builtin  map[string]struct{}
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(adminRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	builtin := make(map[string]struct{})
	for _, seed := range BuiltinRoleSeeds() {
		if seed.Immutable {
			if role, err := NormalizeRole(seed.Role); err == nil {
				builtin[role] = struct{}{}
			}
		}
	}
	return &Service{enforcer: enforcer, builtin: builtin}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// IsBuiltinRole 是否为系统预置且不可修改的角色
func (s *Service) IsBuiltinRole(role string) bool {
	if s == nil {
		return false
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	_, ok := s.builtin[normalized]
	return ok
}

// Enforce 执行授权判断
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceAdmin 按管理员 ID 判定授权
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForAdmin(adminID), obj, act)
}

// EnsureRole 确保角色存在，返回带前缀的角色名
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return normalized, nil
}

// ListRoles 列出所有角色（含预置角色）
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetNamedGroupingPolicy("g")
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	seen := make(map[string]struct{})
	for _, rule := range rules {
		for _, name := range rule {
			if isUserRole(name) {
				seen[name] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// DeleteRole 删除自定义角色及其策略、继承关系与管理员绑定
func (s *Service) DeleteRole(role string) error {
	normalized, err := s.mutableRole(role)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	for _, field := range []int{0, 1} {
		if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", field, normalized); err != nil {
			return fmt.Errorf("remove role link failed: %w", err)
		}
	}
	return nil
}

// GrantRolePolicy 为自定义角色授予策略
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalized, err := s.mutableRole(role)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(normalized, object, action)
	if err != nil {
		return err
	}
	if _, err := s.EnsureRole(normalized); err != nil {
		return err
	}
	if _, err := s.enforcer.AddPolicy(policy.Subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy 撤销自定义角色策略
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	normalized, err := s.mutableRole(role)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(normalized, object, action)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemovePolicy(policy.Subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// GetRolePolicies 查询角色直接持有的策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalized)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return convertPolicies(rules), nil
}

// SetAdminRoles 覆盖设置管理员角色
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return ErrAdminRequired
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalizedRoles := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		normalizedRoles = append(normalizedRoles, normalized)
	}

	subject := SubjectForAdmin(adminID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}
	for _, role := range normalizedRoles {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("assign admin role failed: %w", err)
		}
	}
	return nil
}

// GetAdminRoles 查询管理员直接绑定的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, ErrAdminRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if isUserRole(role) {
			seen[role] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// GetAdminPolicies 查询管理员生效策略（直连 + 角色及其继承链）
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	if adminID == 0 {
		return nil, ErrAdminRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject := SubjectForAdmin(adminID)
	subjects := []string{subject}
	implicit, err := s.enforcer.GetImplicitRolesForUser(subject)
	if err != nil {
		return nil, fmt.Errorf("get implicit roles failed: %w", err)
	}
	for _, role := range implicit {
		if isUserRole(role) {
			subjects = append(subjects, role)
		}
	}

	merged := map[string]Policy{}
	for _, sub := range subjects {
		rules, err := s.enforcer.GetFilteredPolicy(0, sub)
		if err != nil {
			return nil, fmt.Errorf("get policies failed: %w", err)
		}
		for _, policy := range convertPolicies(rules) {
			merged[policy.key()] = policy
		}
	}

	result := make([]Policy, 0, len(merged))
	for _, policy := range merged {
		result = append(result, policy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].key() < result[j].key() })
	return result, nil
}

func (s *Service) mutableRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	if _, ok := s.builtin[normalized]; ok {
		return "", ErrBuiltinRole
	}
	return normalized, nil
}

func buildPolicy(role, object, action string) (Policy, error) {
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return Policy{}, ErrActionRequired
	}
	return Policy{Subject: role, Object: NormalizeObject(object), Action: normalizedAction}, nil
}

func isUserRole(name string) bool {
	return strings.HasPrefix(name, rolePrefix) && name != roleAnchor
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForAdmin 管理员主体标识 admin:<id>
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole 角色名统一为 role:<name>，空格替换为下划线
func NormalizeRole(role string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" {
		return "", ErrRoleRequired
	}
	normalized := rolePrefix + name
	if normalized == roleAnchor {
		return "", ErrReservedRole
	}
	return normalized, nil
}

// NormalizeObject 资源路径去掉 /api/v1 前缀并保证以 / 开头
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return strings.TrimPrefix(normalized, apiV1Prefix)
}

// NormalizeAction 动作统一为大写 HTTP 方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
