package grove

import "fmt"

// ResolveStats reports what a resolve pass did.
type ResolveStats struct {
	// Instances is the number of prefab instance roots found.
	Instances int
	// Restored is the number of nodes recreated from their templates.
	Restored int
	// DroppedBones is the number of bone references that could not be
	// remapped to an instance node and were removed.
	DroppedBones int
}

// Resolve reconciles every prefab instance in the graph against its template:
//
//  1. Re-sync: instance nodes take the current template values of their
//     fields, except transform fields the user customized. Mesh geometry is
//     replaced wholesale by the template's.
//  2. Integrity: template nodes missing from an instance (new template
//     additions, or nodes lost to partial saves) are recreated and linked
//     under the copy of their template parent.
//  3. Remap: handle references that steps 1 and 2 brought over in template
//     space (skeleton bones, joint bodies, handle properties, geometry
//     sources) are rewritten to the matching instance nodes; unresolvable
//     bones are dropped.
//
// A final sweep invalidates camera backdrops so their derived resources are
// rebuilt, and recomputes hierarchical data.
//
// Panics if any referenced prefab is still loading: resolving against a
// half-loaded template would silently corrupt instances.
func (g *Graph) Resolve() ResolveStats {
	logInfof("started resolving graph")

	g.pool.ForEach(func(handle Handle, node *Node) {
		if node.Prefab != nil && node.Prefab.State == PrefabPending {
			panic(fmt.Sprintf("grove: cannot resolve graph, prefab %s is still pending", node.Prefab.Path))
		}
	})

	var stats ResolveStats
	// Nodes whose handle references currently point into template space.
	// Filled by the re-sync and integrity passes, consumed by the remap.
	templateSpace := map[Handle]struct{}{}
	g.resyncTemplatedFields(templateSpace)
	g.restoreIntegrity(&stats, templateSpace)
	g.remapInstanceReferences(&stats, templateSpace)

	g.pool.ForEach(func(handle Handle, node *Node) {
		if node.Type == NodeTypeCamera && node.Camera.Backdrop != nil {
			node.Camera.Backdrop.Invalidate()
		}
	})

	g.UpdateHierarchicalData()
	logInfof("graph resolved successfully, %d instances, %d nodes restored", stats.Instances, stats.Restored)
	return stats
}

// resyncTemplatedFields re-establishes the template link of every instance
// node and pulls current template values for non-customized fields. Meshes
// take the template geometry wholesale, leaving their bone references in
// template space.
func (g *Graph) resyncTemplatedFields(templateSpace map[Handle]struct{}) {
	g.pool.ForEach(func(handle Handle, node *Node) {
		if node.Prefab == nil || node.Prefab.Graph == nil {
			return
		}
		template := g.templateNodeOf(node)
		if template == nil {
			logWarnf("no template node found for instance node %s of prefab %s", node.Name, node.Prefab.Path)
			return
		}
		inheritTransform(&node.Local, &template.Local)
		node.InvBindPose = template.InvBindPose
		if node.Type == NodeTypeMesh && template.Mesh != nil {
			node.Mesh = rawCopy(template).Mesh
			templateSpace[handle] = struct{}{}
		}
	})
}

// templateNodeOf finds the template node an instance node maps to, repairing
// the recorded original handle when it works by name.
func (g *Graph) templateNodeOf(node *Node) *Node {
	templateGraph := node.Prefab.Graph
	if node.Prefab.Mapping == MapByHandle {
		if template, ok := templateGraph.TryGet(node.OriginalHandle); ok {
			return template
		}
	}
	found := templateGraph.FindByNameFromRoot(node.Name)
	if found.IsNone() {
		return nil
	}
	node.OriginalHandle = found
	return templateGraph.Get(found)
}

// inheritTransform copies template transform fields into the instance, except
// fields the user customized.
func inheritTransform(dst, src *Transform) {
	if !dst.Custom.Has(FieldPosition) {
		dst.assignPosition(src.Position)
	}
	if !dst.Custom.Has(FieldRotation) {
		dst.assignRotation(src.Rotation)
	}
	if !dst.Custom.Has(FieldScale) {
		dst.assignScale(src.Scale)
	}
	if !dst.Custom.Has(FieldPreRotation) {
		dst.assignPreRotation(src.PreRotation)
	}
	if !dst.Custom.Has(FieldPostRotation) {
		dst.assignPostRotation(src.PostRotation)
	}
	if !dst.Custom.Has(FieldRotationOffset) {
		dst.assignRotationOffset(src.RotationOffset)
	}
	if !dst.Custom.Has(FieldRotationPivot) {
		dst.assignRotationPivot(src.RotationPivot)
	}
	if !dst.Custom.Has(FieldScalingOffset) {
		dst.assignScalingOffset(src.ScalingOffset)
	}
	if !dst.Custom.Has(FieldScalingPivot) {
		dst.assignScalingPivot(src.ScalingPivot)
	}
}

// restoreIntegrity recreates template nodes missing from each instance. The
// template is traversed parents-first so a restored node always finds its
// parent's copy already present. Restored nodes keep their handle references
// in template space for the remap pass.
func (g *Graph) restoreIntegrity(stats *ResolveStats, templateSpace map[Handle]struct{}) {
	var instanceRoots []Handle
	g.pool.ForEach(func(handle Handle, node *Node) {
		if node.IsPrefabInstanceRoot && node.Prefab != nil && node.Prefab.Graph != nil {
			instanceRoots = append(instanceRoots, handle)
		}
	})

	for _, instanceRoot := range instanceRoots {
		stats.Instances++
		prefab := g.pool.MustGet(instanceRoot).Prefab
		template := prefab.Graph
		restored := 0

		template.Traverse(template.root, func(templateHandle Handle, templateNode *Node) {
			if templateHandle == template.root {
				return
			}
			if g.FindCopyOf(instanceRoot, templateHandle).IsSome() {
				return
			}
			restoredNode := rawCopy(templateNode)
			restoredNode.Parent = HandleNone
			restoredNode.Children = nil
			restoredNode.Prefab = prefab
			restoredNode.OriginalHandle = templateHandle
			newHandle := g.AddNode(restoredNode)
			templateSpace[newHandle] = struct{}{}

			parent := g.FindCopyOf(instanceRoot, templateNode.Parent)
			if parent.IsNone() {
				parent = instanceRoot
			}
			g.LinkNodes(newHandle, parent)
			restored++
		})

		if restored > 0 {
			logInfof("restored %d nodes for prefab instance %s", restored, g.pool.MustGet(instanceRoot).Name)
		}
		stats.Restored += restored
	}
}

// remapInstanceReferences rewrites the template-space handle references of
// the given nodes onto the matching instance nodes. Collect-then-apply: all
// copy-of lookups run before any reference is rewritten, so a partially
// rewritten node can never satisfy a lookup.
func (g *Graph) remapInstanceReferences(stats *ResolveStats, templateSpace map[Handle]struct{}) {
	type boneFix struct {
		surface *Surface
		bones   []Handle
	}
	type handleFix struct {
		target *Handle
		value  Handle
	}
	var boneFixes []boneFix
	var handleFixes []handleFix

	for handle := range templateSpace {
		node, ok := g.pool.Get(handle)
		if !ok {
			continue
		}
		instanceRoot := g.findInstanceRoot(handle)
		if instanceRoot.IsNone() {
			continue
		}

		if node.Type == NodeTypeMesh {
			for _, surface := range node.Mesh.Surfaces {
				if len(surface.Bones) == 0 {
					continue
				}
				remapped := make([]Handle, 0, len(surface.Bones))
				for _, bone := range surface.Bones {
					copyOf := g.FindCopyOf(instanceRoot, bone)
					if copyOf.IsNone() {
						stats.DroppedBones++
						logWarnf("dropped unresolved bone reference %v of mesh node %s", bone, node.Name)
						continue
					}
					remapped = append(remapped, copyOf)
				}
				boneFixes = append(boneFixes, boneFix{surface: surface, bones: remapped})
			}
		}

		if node.Type == NodeTypeJoint {
			if node.Joint.Body1.IsSome() {
				handleFixes = append(handleFixes,
					handleFix{target: &node.Joint.Body1, value: g.FindCopyOf(instanceRoot, node.Joint.Body1)})
			}
			if node.Joint.Body2.IsSome() {
				handleFixes = append(handleFixes,
					handleFix{target: &node.Joint.Body2, value: g.FindCopyOf(instanceRoot, node.Joint.Body2)})
			}
		}
		if node.Type == NodeTypeCollider {
			for i := range node.Collider.Shape.Sources {
				src := &node.Collider.Shape.Sources[i]
				if src.Node.IsSome() {
					handleFixes = append(handleFixes,
						handleFix{target: &src.Node, value: g.FindCopyOf(instanceRoot, src.Node)})
				}
			}
			hf := &node.Collider.Shape.HeightfieldSource
			if hf.Node.IsSome() {
				handleFixes = append(handleFixes,
					handleFix{target: &hf.Node, value: g.FindCopyOf(instanceRoot, hf.Node)})
			}
		}
		for i := range node.Properties {
			value := &node.Properties[i].Value
			if value.Kind == PropertyNodeHandle && value.NodeHandle.IsSome() {
				handleFixes = append(handleFixes,
					handleFix{target: &value.NodeHandle, value: g.FindCopyOf(instanceRoot, value.NodeHandle)})
			}
		}
	}

	for _, fix := range boneFixes {
		fix.surface.Bones = fix.bones
	}
	for _, fix := range handleFixes {
		*fix.target = fix.value
	}
}
